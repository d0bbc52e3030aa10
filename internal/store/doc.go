// Package store owns the site files of a server family: the available
// directory holding rendered files and the enabled marker for each.
//
// Changes become visible only through a rename. Content is first written
// and fsynced to a staging directory on the same filesystem (Stage), then
// renamed over the live file (Activate or Replace), so a reader of the
// available directory never sees a partial file.
//
// The enabled marker is abstracted by Linker: SymlinkLinker for the
// Nginx layout, CommandLinker for a2ensite/a2dissite style commands.
//
// Lock serialises work on one site name across processes with flock(2).
package store
