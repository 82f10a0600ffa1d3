package domain

import (
	"fmt"
	"strings"
)

// Level classifies a student's academic stage.
type Level string

const (
	LevelBachelor  Level = "BACHELOR"
	LevelMaster    Level = "MASTER"
	LevelEngineer  Level = "ENGINEER"
	LevelDoctorate Level = "DOCTORATE"
)

// Levels lists every recognised level in declaration order.
func Levels() []Level {
	return []Level{LevelBachelor, LevelMaster, LevelEngineer, LevelDoctorate}
}

// Valid reports whether l is a member of the enumeration.
func (l Level) Valid() bool {
	switch l {
	case LevelBachelor, LevelMaster, LevelEngineer, LevelDoctorate:
		return true
	}
	return false
}

// ParseLevel accepts a level name in any letter case.
func ParseLevel(raw string) (Level, error) {
	level := Level(strings.ToUpper(strings.TrimSpace(raw)))
	if !level.Valid() {
		return "", fmt.Errorf("invalid level %q", raw)
	}
	return level, nil
}

// Student is a single student record.
type Student struct {
	ID       int64
	Username string
	Level    Level
}
