// Interestd - Interest Modeling and Profile Analytics
// Copyright 2026 OpenRIMA contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/openrima/interestd

// Package api provides the HTTP surface of the service using chi:
// content ingestion, pipeline triggers, interest queries, trend and
// activity views, the public extraction and similarity endpoints, and
// blacklist management. All responses use the APIResponse envelope.
package api
