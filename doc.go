// Package main is the entry point of GoBlogAdmin, a blog administration
// service. It serves a JSON REST API secured with bearer tokens and a role
// based permission table, and a server rendered browser client on top of it.
// See "go-blog-admin --help" for the available commands.
package main
