// Package script parses the line-oriented .own ownership-script format into
// an operation program.
//
// One operation per line; blank lines and lines starting with # are skipped:
//
//	param input 'a        caller-supplied binding with lifetime 'a
//	bind s = "hello"      owned local binding (the value text is opaque)
//	ref r1 = &s           shared reference
//	ref r2 = &mut s       mutable reference
//	ref r3 = &'a input    shared reference tied to lifetime 'a
//	move v <- s           transfer ownership of s into v
//	mutate s              reassign or modify s in place
//	use r1                read a binding (or read through a reference chain)
//	drop r1               end the borrow held by r1
//	return r3             return a binding out of the function
//	scope {               open a lexical scope
//	}                     close the innermost scope
//
// Parse reports malformed lines through a diag.Reporter and keeps going, so
// one bad line does not hide the rest of the script.
package script
