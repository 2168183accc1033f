/*
Package targeting decides which recipients a notification is destined for.

Resolve is a pure function over a canonical notification record and a
recipient identity. Exactly one targeting path is authoritative per record,
in strict precedence order:

	individual user IDs  >  role list  >  audience string  >  no match

The role list, when non-empty, is authoritative: a recipient whose role is
absent from it is rejected outright and the legacy audience string is never
consulted as a second chance. The literal "all" matches every role in both
the role list and the audience string.

Role comparison is normalization-based (NormalizeRole): case, whitespace,
underscores and hyphens are insignificant, so historical role spellings like
"Super Admin" and "super_admin" target the same recipients.

Self-authorship suppression (Suppressed) is deliberately separate from
Resolve so that Resolve stays a pure targeting predicate: an author never
sees their own broadcast unless they are also an explicit individual target.
*/
package targeting
