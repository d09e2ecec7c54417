// Package cache provides LRU caching for blocks of stored run data.
//
// # Block Cache (RAM)
//
// ShardedLRUBlockCache keeps recently fetched blob blocks in memory. It is
// sharded 64 ways so concurrent readers do not serialize on one mutex, and
// it can draw its bytes from a resource.Controller so cache growth competes
// with buffered results under the run's memory limit.
//
// # Disk Cache (L2)
//
// For object-store backends, DiskBlockCache persists blocks on local disk.
// Writes happen in the background off the fetch path, eviction is LRU with
// a configurable size limit, and the index is rebuilt from the directory on
// startup.
package cache
