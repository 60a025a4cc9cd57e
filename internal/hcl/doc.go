// Package hcl provides the HCL implementation of config.Loader. A workflow is
// a sequence of labelled node blocks:
//
//	node "A" {
//	  start = true
//	  edges = {
//	    B = 0.5
//	    C = 0.7
//	  }
//	}
//
//	node "B" {}
//	node "C" {}
//
// Block order and the order of keys inside each edges object are preserved.
package hcl
