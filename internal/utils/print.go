package utils

import "github.com/fatih/color"

var (
	Bold    = color.New(color.Bold)
	Red     = color.New(color.FgRed)
	HiGreen = color.New(color.FgHiGreen)
	Faint   = color.New(color.Faint)
	Warn    = color.New(color.FgYellow)
	Error   = color.New(color.FgRed, color.Bold)
	Success = color.New(color.FgGreen, color.Bold)
)
