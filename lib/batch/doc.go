// Copyright 2026 The bskyctl Authors
// SPDX-License-Identifier: Apache-2.0

// Package batch runs a bulk action over a queue of actors with
// checkpointed resume state.
//
// The queue is FIFO and the head item stays in the queue until it is
// terminally classified (done, skipped, or failed), so the checkpoint
// files always name the true remainder: a killed process can resume
// from the in-place list or the remaining file without losing or
// repeating work. Failed items move to the tail and are not
// re-attempted within the run; once the head is an item that has
// already failed, everything left in the queue is a recorded failure
// and the run is complete.
package batch
