package command

var Truncate = truncate
