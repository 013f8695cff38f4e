package pathcodec

import "slices"

// Classification is the decode result for one stored path
type Classification struct {
	Path string                `json:"path" yaml:"path"`
	Info DeconstructedPathInfo `json:"info" yaml:"info"`
}

// Summary counts classifications by file type
type Summary struct {
	Total      int              `json:"total" yaml:"total"`
	Recognized int              `json:"recognized" yaml:"recognized"`
	ByType     map[FileType]int `json:"by_type" yaml:"by_type"`
	Misses     []string         `json:"misses,omitempty" yaml:"misses,omitempty"`
}

// Classify decodes a slash separated storage path
func Classify(fullPath string) Classification {
	return Classification{Path: fullPath, Info: DeconstructPath(fullPath)}
}

// Summarize tallies classifications. Misses are sorted.
func Summarize(results []Classification) Summary {
	s := Summary{Total: len(results), ByType: make(map[FileType]int)}
	for _, r := range results {
		if !r.Info.Recognized() {
			s.Misses = append(s.Misses, r.Path)
			continue
		}
		s.Recognized++
		s.ByType[r.Info.FileType]++
	}
	slices.Sort(s.Misses)
	return s
}
