// Package cop defines the contract between the analysis engine and the rules
// ("cops") it runs, together with the registry that indexes rules by the node
// kinds and method names they are interested in.
//
// A cop is a stateless value implementing Rule. It declares its metadata and
// interest once; the engine calls Visit for every matching node of every tree
// it walks, possibly from several goroutines at the same time. The only side
// effect a cop may have is reporting offenses through the Pass it is handed.
//
// Registration is explicit: callers build a Registry, call Register for each
// cop and Freeze it before analysis. After Freeze the registry is read-only
// and safe for concurrent use.
package cop
