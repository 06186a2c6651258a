// Package worldrepo versions map worlds in git. It carries its own add
// command because world files are typically listed in .gitignore.
package worldrepo
