// Package orgmode reads clocked time from Org-mode files, the
// "CLOCK: [start]--[end] => h:mm" lines Emacs writes under a heading.
package orgmode

import (
	"bufio"
	"io"
	"log"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"
)

const clockLayout = "2006-01-02 Mon 15:04"

var (
	headingRegex = regexp.MustCompile(`^\*+\s+(?:(?:TODO|DONE|NEXT|WAITING|CANCELLED)\s+)?(?:\[#([A-Z])\]\s*)?(.*?)(?:\s+(:(?:[\w@]+:)+))?\s*$`)
	clockRegex   = regexp.MustCompile(`^CLOCK:\s+\[([^\]]+)\]--\[([^\]]+)\]`)
)

// Clock is one closed clock interval and the heading it was recorded under.
type Clock struct {
	Heading  string
	Tags     []string
	Start    time.Time
	Duration time.Duration
	Source   string
}

func parseFile(filePath string) ([]Clock, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Parse(file, filePath)
}

// ParseFiles parses every file and returns their clocks, oldest first.
func ParseFiles(filePaths []string) ([]Clock, error) {
	var all []Clock
	for _, filePath := range filePaths {
		clocks, err := parseFile(filePath)
		if err != nil {
			return nil, err
		}
		all = append(all, clocks...)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Start.Before(all[j].Start) })
	return all, nil
}

// Parse reads closed CLOCK lines. Running clocks, which have no end, and
// lines before the first heading are skipped; malformed timestamps are logged.
func Parse(r io.Reader, source string) ([]Clock, error) {
	scanner := bufio.NewScanner(r)
	var clocks []Clock
	var heading string
	var tags []string

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, "*") {
			if matches := headingRegex.FindStringSubmatch(line); matches != nil {
				heading = strings.TrimSpace(matches[2])
				tags = nil
				if matches[3] != "" {
					tags = strings.Split(strings.Trim(matches[3], ":"), ":")
				}
			}
			continue
		}

		matches := clockRegex.FindStringSubmatch(line)
		if matches == nil || heading == "" {
			continue
		}
		start, err := time.ParseInLocation(clockLayout, matches[1], time.Local)
		if err != nil {
			log.Printf("Warning: %s: invalid clock start %q", source, matches[1])
			continue
		}
		end, err := time.ParseInLocation(clockLayout, matches[2], time.Local)
		if err != nil {
			log.Printf("Warning: %s: invalid clock end %q", source, matches[2])
			continue
		}
		if !end.After(start) {
			continue
		}
		clocks = append(clocks, Clock{
			Heading:  heading,
			Tags:     tags,
			Start:    start,
			Duration: end.Sub(start),
			Source:   source,
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return clocks, nil
}

// FilterClocks keeps the clocks whose heading carries tag.
func FilterClocks(clocks []Clock, tag string) []Clock {
	var filtered []Clock
	for _, c := range clocks {
		for _, t := range c.Tags {
			if t == tag {
				filtered = append(filtered, c)
				break
			}
		}
	}
	return filtered
}
