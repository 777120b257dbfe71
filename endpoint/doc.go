// Package endpoint defines endpoint tables and the contracts shared by
// services, renderers and the HTTP server handle they register on.
//
// An endpoint is a named (verb, URL subpath) pair. Services declare a Table of
// Definitions and map each name to a method; the render and appchunk packages
// turn those into Handlers registered on a Server.
//
// # Table format
//
//	endpoints:
//	  - name: list-users
//	    method: get
//	    subpath: /users
//	  - name: create-user
//	    method: post
//	    subpath: /users
//
// The method defaults to "get" and is case-insensitive.
package endpoint
