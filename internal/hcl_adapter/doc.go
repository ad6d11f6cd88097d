// Package hcl_adapter loads graphs written in HCL.
//
// A graph file declares nodes, connections between their ports and an
// optional settings block:
//
//	settings {
//	  memory_limit = "256MB"
//	  parallel     = true
//	}
//
//	node "src" {
//	  operation  = "constant_int"
//	  parameters = { value = 5 }
//	}
//
//	node "sum" {
//	  operation  = "add"
//	  parameters = { addend = 3 }
//	}
//
//	connection {
//	  from = "src.value"
//	  to   = "sum.value"
//	}
//
// Node block labels are local names used by connections and become the
// nodes' display labels. Parameter literals are coerced to the declared
// parameter types, so `factor = 2` fills a float parameter and
// `color = "#ff0000ff"` a color one.
package hcl_adapter
