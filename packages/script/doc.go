// Package script runs PreExec and PostExec shell commands around a request.
//
// Scripts see the current variables as PURL_VAR_<name> environment entries
// and can write variables back by printing "set_var <name> <value>" lines to
// stdout.
package script
