// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package cache provides a small generic LRU cache.
//
//	shaped := cache.NewLRU[string, []run](256)
//	shaped.Put("12/654/1583", runs)
//	runs, ok := shaped.Get("12/654/1583")
package cache
