package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the Vicinity ASCII banner.
func PrintBanner(version string) {
	p := termenv.ColorProfile()
	s1 := termenv.String(" __   __ _         _         _  _          ").Foreground(p.Color("#34d399"))
	s2 := termenv.String(" \\ \\ / /(_) ___   (_) _ __  (_)| |_  _   _ ").Foreground(p.Color("#2dd4bf"))
	s3 := termenv.String("  \\ V / | |/ __|  | || '_ \\ | || __|| | | |").Foreground(p.Color("#22d3ee"))
	s4 := termenv.String("   | |  | || (__  | || | | || || |_ | |_| |").Foreground(p.Color("#38bdf8"))
	s5 := termenv.String("   |_|  |_|\\___| |_||_| |_||_| \\__| \\__, |").Foreground(p.Color("#60a5fa"))
	s6 := termenv.String("                                    |___/  ").Foreground(p.Color("#818cf8"))

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println(s5)
	fmt.Println(s6)
	fmt.Printf("   v%s\n\n", version)
}
