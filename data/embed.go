package data

import (
	_ "embed"
)

// SeedSubjects is the starter subject list loaded when the subjects collection is empty
//
//go:embed seed/subjects.json
var SeedSubjects []byte
