// Reelpick - Three-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

// Package validation provides struct validation using go-playground/validator v10.
//
// It wraps a thread-safe singleton validator with user-friendly error
// messages and conversion to the API error format.
//
// Fields are reported by their json (or query) tag names, and slice
// elements by index, for example "seeds[1]".
//
// # Usage
//
//	type RecommendRequest struct {
//	    Seeds     []string `json:"seeds" validate:"required,len=3"`
//	    TopN      int      `json:"top_n" validate:"min=0"`
//	    Algorithm string   `json:"algorithm" validate:"omitempty,oneof=content collaborative"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    // respond 400 with apiErr.Code, apiErr.Message, apiErr.Details
//	}
package validation
