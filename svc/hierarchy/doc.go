// Package hierarchy maintains the per-tenant resource tree and its
// transitive-closure index.
//
// Every (ancestor, descendant) pair of the tree, including the (node, node)
// self pair at depth 0, is materialized as one closure row, which turns
// subtree and ancestor lookups into single indexed queries with no
// recursion. The price is that every structural change must keep the closure
// consistent:
//
//   - creating a node inserts its self row plus one row per ancestor of its
//     parent at depth+1;
//   - deleting a subtree removes every row in which any subtree node appears
//     on either side;
//   - moving a subtree rewrites every row pairing a subtree node with an old
//     ancestor into rows pairing it with the new ancestors.
//
// Moving is the error-prone one: a half-applied move silently corrupts every
// future subtree authorization check, so the service runs each structural
// change inside a single transaction and the Store port is the only place
// allowed to touch the closure table.
package hierarchy
