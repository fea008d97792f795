/*
DESCRIPTION
  errors.go declares the error taxonomy used across the header, mapping,
  DM, and orchestration codecs: sentinel errors for simple cases, typed
  structs for parameterized cases, matching the taxonomy in spec section 7.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package rpu

import "github.com/pkg/errors"

var (
	// ErrInvalidStartBytes is returned when parse_rpu/parse_unspec62_nalu is
	// given a buffer whose leading bytes match no recognised signature.
	ErrInvalidStartBytes = errors.New("rpu: invalid start bytes")

	// ErrInvalidStopByte is returned when the byte preceding any trailing
	// zero padding is not 0x80.
	ErrInvalidStopByte = errors.New("rpu: invalid stop byte")

	// ErrTruncatedPayload is returned when the buffer is shorter than the
	// minimum viable RPU payload.
	ErrTruncatedPayload = errors.New("rpu: truncated payload")

	// ErrCrcMismatch is returned when the computed CRC-32 does not match
	// the stored one and the RPU has not been explicitly modified.
	ErrCrcMismatch = errors.New("rpu: crc32 mismatch")

	// ErrUnalignedZeroBitNotZero is returned when an alignment bit expected
	// to be zero is one.
	ErrUnalignedZeroBitNotZero = errors.New("rpu: alignment zero bit is not zero")

	// ErrNlqPivotSumInvalid is returned when the two NLQ predicted pivot
	// values do not sum to 1023.
	ErrNlqPivotSumInvalid = errors.New("rpu: nlq_pred_pivot_value does not sum to 1023")

	// ErrMmrOrderOutOfRange is returned when mmr_order_minus1 exceeds 2.
	ErrMmrOrderOutOfRange = errors.New("rpu: mmr_order_minus1 out of range")

	// ErrEmptyReplaceLevels is returned by ReplaceLevelsFromRpu when given
	// no levels to copy.
	ErrEmptyReplaceLevels = errors.New("rpu: must have levels to replace")

	// ErrShotDurationsMismatch is returned by the generator when shot
	// durations do not sum to the configured length.
	ErrShotDurationsMismatch = errors.New("rpu: shot durations do not sum to configured length")

	// ErrNotProfile7Or8 is returned by the MEL conversion when the source
	// RPU is profile 7 but carries no NLQ section and isn't profile 8
	// either, so there is no NLQ template to fall back to.
	ErrNotProfile7Or8 = errors.New("rpu: not profile 7 or 8, cannot convert to MEL")

	// ErrNotProfile5 is returned when a profile-5-specific conversion is
	// requested on an RPU that isn't profile 5.
	ErrNotProfile5 = errors.New("rpu: attempted profile 5 conversion on non-profile-5 RPU")
)

// InvalidProfileField is returned when a header or mapping field violates
// the cross-field invariant for the derived profile.
type InvalidProfileField struct {
	Field    string
	Expected interface{}
	Got      interface{}
}

func (e *InvalidProfileField) Error() string {
	return errors.Errorf("rpu: field %q: expected %v, got %v", e.Field, e.Expected, e.Got).Error()
}

// BlockLevelNotAllowedInVersion is returned when an extension metadata
// block's level is not part of its container's allowed-level set.
type BlockLevelNotAllowedInVersion struct {
	Level   uint8
	Version string
}

func (e *BlockLevelNotAllowedInVersion) Error() string {
	return errors.Errorf("rpu: level %d not allowed in %s", e.Level, e.Version).Error()
}

// BlockMultiplicityExceeded is returned when a DM container would hold more
// instances of a level than its multiplicity cap allows.
type BlockMultiplicityExceeded struct {
	Level uint8
	Max   int
}

func (e *BlockMultiplicityExceeded) Error() string {
	return errors.Errorf("rpu: level %d multiplicity exceeds max %d", e.Level, e.Max).Error()
}

// ConversionNotApplicable is returned when a profile conversion mode is
// requested for a profile it is not legal for.
type ConversionNotApplicable struct {
	FromProfile int
	Mode        string
}

func (e *ConversionNotApplicable) Error() string {
	return errors.Errorf("rpu: conversion %s not applicable from profile %d", e.Mode, e.FromProfile).Error()
}
