package domain

import "time"

// Record describes a successful generation run.
type Record struct {
	BuildFile   string    `json:"buildFile"`
	Digest      string    `json:"digest"`
	Changed     bool      `json:"changed"`
	Inputs      []string  `json:"inputs"`
	Variants    []string  `json:"variants"`
	Projects    []string  `json:"projects"`
	Edges       int       `json:"edges"`
	GeneratedAt time.Time `json:"generatedAt"`
}
