// Package colors hands out Google Calendar color IDs per task title so the
// same kind of work keeps the same color across exports.
package colors

import (
	"encoding/json"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/harrisonrobin/ptt/pkg/clock"
	"github.com/harrisonrobin/ptt/pkg/util"
)

const (
	CacheFile = "task_colors.json"

	// ActiveColorID marks the task being tracked (Tomato). It is never
	// handed out to a title.
	ActiveColorID = "11"
	// UntitledColorID is used for tasks without a description (Graphite).
	UntitledColorID = "8"

	maxColorID = 10
)

type TitleState struct {
	ColorID      string    `json:"color_id"`
	LastModified time.Time `json:"last_modified"`
}

type ColorCache struct {
	Path   string
	Titles map[string]*TitleState `json:"titles"`
	clock  clock.Clock
	dirty  bool
}

// NewColorCache loads the cache at path, or starts an empty one.
func NewColorCache(path string, clk clock.Clock) (*ColorCache, error) {
	if clk == nil {
		clk = clock.RealClock{}
	}
	cache := &ColorCache{
		Path:   path,
		Titles: make(map[string]*TitleState),
		clock:  clk,
	}

	if _, err := os.Stat(path); err == nil {
		if err := cache.Load(); err != nil {
			return nil, err
		}
	}
	return cache, nil
}

func (c *ColorCache) Load() error {
	f, err := os.Open(c.Path)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewDecoder(f).Decode(&c.Titles)
}

func (c *ColorCache) Save() error {
	if !c.dirty {
		return nil
	}
	data, err := json.Marshal(c.Titles)
	if err != nil {
		return err
	}
	if err := util.WriteFileAtomic(c.Path, data, 0600); err != nil {
		log.Printf("Error writing color cache: %v", err)
		return err
	}
	c.dirty = false
	return nil
}

// GetColorID returns the color of title, assigning the least recently used
// one when every color is taken.
func (c *ColorCache) GetColorID(title string) string {
	if title == "" {
		return UntitledColorID
	}

	if state, exists := c.Titles[title]; exists {
		state.LastModified = c.clock.Now()
		c.dirty = true
		return state.ColorID
	}
	return c.assignColor(title)
}

func (c *ColorCache) assignColor(title string) string {
	used := make(map[string]bool)
	for _, s := range c.Titles {
		used[s.ColorID] = true
	}

	for i := 1; i <= maxColorID; i++ {
		id := strconv.Itoa(i)
		if i == 8 || used[id] {
			continue
		}
		c.Titles[title] = &TitleState{ColorID: id, LastModified: c.clock.Now()}
		c.dirty = true
		return id
	}

	var oldest string
	var oldestTime time.Time
	for t, s := range c.Titles {
		if oldest == "" || s.LastModified.Before(oldestTime) {
			oldest, oldestTime = t, s.LastModified
		}
	}

	recycled := c.Titles[oldest].ColorID
	delete(c.Titles, oldest)
	c.Titles[title] = &TitleState{ColorID: recycled, LastModified: c.clock.Now()}
	c.dirty = true
	return recycled
}
