package lexicon

import (
	"fmt"
	"strings"
)

const (
	consonants = "pbtdkgmnfshlrwj"
	vowels     = "aeiou"
)

// permittedClusters are the only two-consonant onsets the phonology allows.
var permittedClusters = map[string]bool{
	"st": true,
	"pl": true,
	"pr": true,
	"tr": true,
	"sp": true,
}

// phonemeSymbols maps letters whose phonemic symbol differs from the spelling.
var phonemeSymbols = map[rune]string{
	'r': "ɾ",
	'j': "y",
}

func isVowel(r rune) bool     { return strings.ContainsRune(vowels, r) }
func isConsonant(r rune) bool { return strings.ContainsRune(consonants, r) }

// IsPhonologicallyValid reports whether word is non-empty and every letter outside the
// compound separator belongs to the vowel or consonant inventory.
func IsPhonologicallyValid(word string) bool {
	word = strings.ToLower(strings.TrimSpace(word))
	if strings.Trim(word, Separator) == "" {
		return false
	}
	for _, r := range word {
		if string(r) == Separator {
			continue
		}
		if !isVowel(r) && !isConsonant(r) {
			return false
		}
	}
	return true
}

// GeneratePronunciation derives a phonemic transcription from the spelling. Compound
// separators become syllable boundaries. Stress is left unmarked.
func GeneratePronunciation(word string) string {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return ""
	}
	parts := strings.Split(word, Separator)
	transcribed := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		var b strings.Builder
		for _, r := range p {
			if sym, ok := phonemeSymbols[r]; ok {
				b.WriteString(sym)
				continue
			}
			b.WriteRune(r)
		}
		transcribed = append(transcribed, b.String())
	}
	return "/" + strings.Join(transcribed, ".") + "/"
}

// NormalizePronunciation strips delimiters, stress marks and boundaries so transcriptions
// that sound the same compare equal.
func NormalizePronunciation(p string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '[', ']', 'ˈ', 'ˌ', '.', '-', ' ', '\t':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(p)))
}

// Status is the outcome of a single check.
type Status string

const (
	StatusPass    Status = "pass"
	StatusWarning Status = "warning"
	StatusFail    Status = "fail"
)

// PhonotacticReport describes how a word fits the phonotactic rules.
type PhonotacticReport struct {
	Word      string   `json:"word"`
	Status    Status   `json:"status"`
	Syllables int      `json:"syllables"`
	Errors    []string `json:"errors,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}

// CheckPhonotactics validates inventory, separator placement, (C)V(C) syllables and
// consonant clusters.
func CheckPhonotactics(word string) PhonotacticReport {
	w := strings.ToLower(strings.TrimSpace(word))
	rep := PhonotacticReport{Word: w}

	switch {
	case w == "":
		rep.Errors = append(rep.Errors, "word is empty")
	case strings.HasPrefix(w, Separator) || strings.HasSuffix(w, Separator):
		rep.Errors = append(rep.Errors, "word cannot start or end with a hyphen")
	case strings.Contains(w, Separator+Separator):
		rep.Errors = append(rep.Errors, "word cannot contain consecutive hyphens")
	}

	var invalid []string
	for _, r := range w {
		if string(r) != Separator && !isVowel(r) && !isConsonant(r) {
			invalid = append(invalid, string(r))
		}
	}
	if len(invalid) > 0 {
		rep.Errors = append(rep.Errors, fmt.Sprintf("letters outside the inventory: %s", strings.Join(invalid, ", ")))
	}

	for i, part := range strings.Split(w, Separator) {
		if part == "" {
			continue
		}
		rep.Syllables += checkRoot(part, i == 0, &rep)
	}

	switch {
	case len(rep.Errors) > 0:
		rep.Status = StatusFail
	case len(rep.Warnings) > 0:
		rep.Status = StatusWarning
	default:
		rep.Status = StatusPass
	}
	return rep
}

// checkRoot applies the syllable and cluster rules to one root and returns its syllable count.
func checkRoot(root string, first bool, rep *PhonotacticReport) int {
	runes := []rune(root)
	nuclei := 0
	run := 0
	for i, r := range runes {
		if isVowel(r) {
			nuclei++
			run = 0
			continue
		}
		if !isConsonant(r) {
			run = 0
			continue
		}
		run++
		if run == 3 {
			rep.Errors = append(rep.Errors, fmt.Sprintf("%q: more than two consonants in a row", root))
		}
		if run == 2 {
			cluster := string(runes[i-1 : i+1])
			switch {
			case i == 1 && first:
				rep.Errors = append(rep.Errors, fmt.Sprintf("%q: word cannot begin with cluster %q", root, cluster))
			case i == len(runes)-1:
				rep.Errors = append(rep.Errors, fmt.Sprintf("%q: syllable cannot end in cluster %q", root, cluster))
			case i == 1 && !permittedClusters[cluster]:
				rep.Warnings = append(rep.Warnings, fmt.Sprintf("%q: onset cluster %q is not in the permitted set", root, cluster))
			}
		}
	}
	if nuclei == 0 {
		rep.Errors = append(rep.Errors, fmt.Sprintf("%q: no vowel nucleus", root))
	}
	if nuclei > 3 {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("%q: roots longer than three syllables are hard to compound", root))
	}
	return nuclei
}

// Similarity compares two words or transcriptions by edit distance. The score is
// 1 - distance/longer length, plus 0.1 when the lengths differ by at most one, capped at 1.
func Similarity(a, b string) float64 {
	ra := []rune(NormalizePronunciation(a))
	rb := []rune(NormalizePronunciation(b))
	longest := max(len(ra), len(rb))
	if longest == 0 {
		return 1
	}
	score := 1 - float64(levenshtein(ra, rb))/float64(longest)
	if d := len(ra) - len(rb); d >= -1 && d <= 1 {
		score += 0.1
	}
	return min(1, score)
}

func levenshtein(a, b []rune) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
