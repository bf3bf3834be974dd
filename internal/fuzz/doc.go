// Package fuzztests houses Go fuzz harnesses for the analysis pipeline
// (source -> tree-sitter Ruby frontend -> engine -> directives). They guard
// against panics, hangs and broken tree invariants on arbitrary input.
//
// Назначение: прогонять произвольные байты через FileSet, парсер и движок.
//
// Зависимости: internal/source, internal/frontend/ruby, internal/engine,
// internal/cops, internal/directive, internal/testkit.
package fuzztests
