package main

// Default command-line flag values
const (
	defaultBarWidth = 60
)
