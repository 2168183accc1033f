/*
Package delivery gates notifications on their release condition.

A notification is released once it is neither a draft nor scheduled for a
future time. Unreleased records are dropped entirely from a recipient's view:
they are not displayed and do not contribute to unread counts. The filter is
a pure predicate evaluated against the caller's clock, so a record scheduled
for the future becomes visible on the first poll after its release time.
*/
package delivery
