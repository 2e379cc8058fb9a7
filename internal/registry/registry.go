// Package registry scans the image tree once at startup and keeps one bucket of
// candidate paths per daypart and per hour.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/wallhelper/internal/daypart"
	ferrors "git.home.luguber.info/inful/wallhelper/internal/foundation/errors"
)

const (
	// DaypartsDir holds one subdirectory per daypart name.
	DaypartsDir = "dayparts"
	// HoursDir holds one subdirectory per hour, named 0 through 23.
	HoursDir = "hours"
)

// Bucket is an ordered list of absolute image paths.
type Bucket []string

// Registry holds the buckets discovered by Scan. It is read-only after construction.
type Registry struct {
	root     string
	dayparts [len(daypart.All)]Bucket
	hours    [daypart.HoursPerDay]Bucket
}

// DaypartDir returns the bucket directory for a daypart under root.
func DaypartDir(root string, n daypart.Name) string {
	return filepath.Join(root, DaypartsDir, string(n))
}

// HourDir returns the bucket directory for an hour under root.
func HourDir(root string, hour int) string {
	return filepath.Join(root, HoursDir, strconv.Itoa(hour))
}

// Scan lists every daypart and hour bucket directory under root. Each directory must
// exist; a missing or unreadable one is fatal.
func Scan(root string) (*Registry, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to resolve image root").
			Fatal().UserAction().
			WithContext("path", root).
			Build()
	}

	reg := &Registry{root: absRoot}
	for i, n := range daypart.All {
		bucket, err := scanDir(DaypartDir(absRoot, n))
		if err != nil {
			return nil, err
		}
		reg.dayparts[i] = bucket
	}
	for hour := 0; hour < daypart.HoursPerDay; hour++ {
		bucket, err := scanDir(HourDir(absRoot, hour))
		if err != nil {
			return nil, err
		}
		reg.hours[hour] = bucket
	}
	return reg, nil
}

// scanDir records the immediate file entries of dir in listing order.
func scanDir(dir string) (Bucket, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read image bucket").
			Fatal().UserAction().
			WithContext("path", dir).
			Build()
	}

	bucket := make(Bucket, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		bucket = append(bucket, filepath.Join(dir, entry.Name()))
	}
	return bucket, nil
}

// Root returns the absolute directory the registry was scanned from.
func (r *Registry) Root() string { return r.root }

// Daypart returns the bucket for n. Unknown names yield an empty bucket.
func (r *Registry) Daypart(n daypart.Name) Bucket {
	i := n.Index()
	if i < 0 {
		return nil
	}
	return r.dayparts[i]
}

// Hour returns the bucket for hour. Out-of-range hours yield an empty bucket.
func (r *Registry) Hour(hour int) Bucket {
	if hour < 0 || hour >= daypart.HoursPerDay {
		return nil
	}
	return r.hours[hour]
}

// Count returns the total number of images across all buckets.
func (r *Registry) Count() int {
	total := 0
	for _, b := range r.dayparts {
		total += len(b)
	}
	for _, b := range r.hours {
		total += len(b)
	}
	return total
}

// Summary reports per-bucket image counts.
type Summary struct {
	Root     string         `yaml:"root"`
	Total    int            `yaml:"total"`
	Dayparts map[string]int `yaml:"dayparts"`
	Hours    map[int]int    `yaml:"hours"`
}

// Summary returns per-bucket counts. Empty hour buckets are omitted.
func (r *Registry) Summary() Summary {
	s := Summary{
		Root:     r.root,
		Total:    r.Count(),
		Dayparts: make(map[string]int, len(daypart.All)),
		Hours:    make(map[int]int),
	}
	for i, n := range daypart.All {
		s.Dayparts[string(n)] = len(r.dayparts[i])
	}
	for hour, b := range r.hours {
		if len(b) > 0 {
			s.Hours[hour] = len(b)
		}
	}
	return s
}

func (s Summary) String() string {
	return fmt.Sprintf("%d images under %s", s.Total, s.Root)
}

// New builds a registry from explicit buckets. Missing entries are empty.
func New(root string, dayparts map[daypart.Name]Bucket, hours map[int]Bucket) *Registry {
	reg := &Registry{root: root}
	for n, b := range dayparts {
		if i := n.Index(); i >= 0 {
			reg.dayparts[i] = b
		}
	}
	for hour, b := range hours {
		if hour >= 0 && hour < daypart.HoursPerDay {
			reg.hours[hour] = b
		}
	}
	return reg
}
