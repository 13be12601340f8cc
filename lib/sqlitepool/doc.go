// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitepool opens the relay's SQLite database as a fixed-size
// pool of zombiezen.com/go/sqlite connections with standard pragmas.
//
// Callers [Pool.Take] a connection, do their work, and [Pool.Put] it
// back. Connections are NOT safe for concurrent use; each goroutine
// holds its own connection for the duration of its work. Concurrent
// event handlers therefore contend only inside SQLite, where WAL mode
// lets readers proceed while one writer holds the lock.
//
// # Pragmas
//
//   - journal_mode=WAL: readers never block the writer and vice versa.
//   - synchronous=NORMAL: committed transactions survive a process
//     crash.
//   - busy_timeout: a writer waits this long for the lock before the
//     statement fails with SQLITE_BUSY. The default of 5 seconds keeps
//     every store call bounded.
//   - foreign_keys: off unless [Config.ForeignKeys] is set. The relay
//     database enables it so messages cannot reference a missing user.
//   - cache_size=-8192, temp_store=MEMORY.
//
// # Usage
//
//	pool, err := sqlitepool.Open(sqlitepool.Config{
//	    Path:        "/var/lib/masa/relay.db",
//	    ForeignKeys: true,
//	    OnConnect: func(conn *sqlite.Conn) error {
//	        return sqlitex.ExecuteScript(conn, schema, nil)
//	    },
//	})
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
// The package stays thin: it exposes the zombiezen types directly and
// leaves SQL and transactions (sqlitex.ImmediateTransaction) to the
// stores.
package sqlitepool
