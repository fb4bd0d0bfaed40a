// Package constructs provides small, independent building blocks for
// application code.
//
// The two central pieces are StateMachine, a generic event-driven state
// machine whose transitions are decided by a weakly held Policy, and
// Subscribers, a multicast registry of weakly held listeners that prunes
// collected members on its own. They do not depend on each other; a common
// composition is a policy whose DidTransition hook broadcasts to a registry
// (see Announce).
//
// Weak references rely on the garbage collector: a policy or subscriber with
// no other reference may disappear at the next GC. Keep them reachable,
// for example with a Retainer.
//
// Smaller helpers: Table and TableBuilder (declarative string policies,
// loadable from YAML), LoggingPolicy, Pump and Ticker, ChannelPublisher,
// WeakBox, Atomic, Clamped and Expirable.
package constructs
