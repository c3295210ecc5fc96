package main

import "errors"

// Sentinel errors for command operations
var (
	ErrInputFileNotExist = errors.New("input file does not exist")
	ErrEmptyInput        = errors.New("no SQL given")
	ErrNotDataQuery      = errors.New("statement is not a data query")
	ErrUnknownFormat     = errors.New("unknown output format")
	ErrFileNotFormatted  = errors.New("file is not formatted")
	ErrFormattingErrors  = errors.New("some files had formatting errors")
)
