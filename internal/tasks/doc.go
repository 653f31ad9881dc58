// Interestd - Interest Modeling and Profile Analytics
// Copyright 2026 OpenRIMA contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/openrima/interestd

// Package tasks runs pipeline work asynchronously over an in-process
// watermill pub/sub. Build and merge requests are enqueued by the HTTP
// API, deduplicated by task identity so the same user/source pair never
// runs twice concurrently, and executed with panic isolation. A
// successful build schedules the follow-up long-term merge after a
// settle delay.
package tasks
