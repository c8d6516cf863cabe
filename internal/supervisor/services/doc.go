// Reelpick - Three-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

/*
Package services provides suture.Service wrappers for Reelpick components.

HTTPServerService adapts the ListenAndServe/Shutdown lifecycle of an
*http.Server to suture's Serve pattern and drains connections within a
bounded timeout when the context is canceled.

RebuildService owns snapshot rebuilds. It runs them on a fixed schedule and
on manual triggers from the admin API. Only one rebuild runs at a time, and
manual triggers closer together than MinGap are refused with
recommend.ErrRebuildThrottled. A failed rebuild is logged and the previous
snapshot keeps serving.

Both services log through zerolog and return ctx.Err() on shutdown.
*/
package services
