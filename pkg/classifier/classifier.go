// Zaparoo Indexer
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Zaparoo Indexer.
//
// Zaparoo Indexer is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Zaparoo Indexer is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Zaparoo Indexer.  If not, see <http://www.gnu.org/licenses/>.

// Package classifier decides whether a media path is a movie or a TV
// episode using folder and filename naming conventions.
package classifier

import (
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/ZaparooProject/zaparoo-indexer/pkg/remote"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Kind string

const (
	KindMovie  Kind = "movie"
	KindTVShow Kind = "tv"
)

// Rule identifies which convention produced a classification. Rules are
// tried in declaration order and the first match wins.
type Rule int

const (
	RuleSeasonFolder Rule = iota + 1
	RuleEpisodeFilename
	RuleMovie
)

func (r Rule) String() string {
	switch r {
	case RuleSeasonFolder:
		return "season-folder"
	case RuleEpisodeFilename:
		return "episode-filename"
	case RuleMovie:
		return "movie"
	default:
		return "unknown"
	}
}

var (
	seasonFolderRe = regexp.MustCompile(`(?i)/(Season|Sezon|Sezonul|S|SO)[\s._]?(\d+)/`)
	episodeRe      = regexp.MustCompile(`(?i)(?:[._\s-]|^)(?:S(\d{1,2})E(\d{1,2})|(\d{1,2})x(\d{1,2}))`)
	yearRe         = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
	junkRe         = regexp.MustCompile(`(?i)\b(?:` + strings.Join(junkTokens, "|") + `)\b`)
)

// junkTokens are release tags stripped from titles: resolution, source,
// video codec and audio codec markers. Tokens sharing a prefix must list the
// longer one first.
var junkTokens = []string{
	"web-dl", "4k", "2160p", "1080p", "720p", "480p", "hdr", "web", "hd", "sd", "dvd", "rip",
	"x264", "x265", "h264", "h265", "hevc", "xvid", "divx",
	"bluray", "webrip", "hdrip", "dvdrip", "brrip", "hdtv", "remux",
	"truehd", "atmos", "aac", "ac3", "dts",
}

// Item is a classified media path.
type Item struct {
	// Path is the stored path, exactly as the crawler reported it.
	Path     string
	Filename string
	Kind     Kind
	// Title is the movie title or the show name.
	Title string
	// Season is the normalised season name, e.g. "Season 01". TV only.
	Season string
	Rule   Rule
	Year   int
	// Episode is zero when the filename carries no episode number.
	Episode int
}

func (i Item) String() string {
	if i.Kind == KindTVShow {
		return fmt.Sprintf("%s %s E%02d", i.Title, i.Season, i.Episode)
	}
	if i.Year > 0 {
		return fmt.Sprintf("%s (%d)", i.Title, i.Year)
	}
	return i.Title
}

// Classify applies the season-folder rule, then the episode-filename rule,
// then the movie fallback. It returns false when no usable title can be
// derived from the path.
func Classify(p string) (Item, bool) {
	decoded := remote.DecodeLocation(p)
	filename := path.Base(decoded)
	item := Item{Path: p, Filename: filename}

	episode := episodeRe.FindStringSubmatch(filename)

	if m := seasonFolderRe.FindStringSubmatchIndex(decoded); m != nil {
		showDir := decoded[:m[0]]
		if show, year := CleanTitle(path.Base(showDir)); show != "" && showDir != "" {
			item.Kind = KindTVShow
			item.Rule = RuleSeasonFolder
			item.Title = show
			item.Year = year
			item.Season = seasonName(decoded[m[2]:m[3]], decoded[m[4]:m[5]])
			item.Episode = episodeNumber(episode)
			return item, true
		}
	}

	if episode != nil {
		parent := path.Base(path.Dir(decoded))
		if show, year := CleanTitle(parent); show != "" && parent != "/" && parent != "." {
			season := episode[1]
			if season == "" {
				season = episode[3]
			}
			item.Kind = KindTVShow
			item.Rule = RuleEpisodeFilename
			item.Title = show
			item.Year = year
			item.Season = seasonName("S", season)
			item.Episode = episodeNumber(episode)
			return item, true
		}
	}

	title, year := CleanTitle(strings.TrimSuffix(filename, path.Ext(filename)))
	if title == "" {
		return Item{}, false
	}
	item.Kind = KindMovie
	item.Rule = RuleMovie
	item.Title = title
	item.Year = year
	return item, true
}

// CleanTitle turns a release-style name into a search title and a year.
// Separators become spaces, the title is cut at the first 19xx/20xx year,
// release tags are removed and whitespace is collapsed. Year is zero when
// none is present.
func CleanTitle(name string) (title string, year int) {
	s := strings.NewReplacer(".", " ", "_", " ").Replace(name)

	if loc := yearRe.FindStringIndex(s); loc != nil {
		year, _ = strconv.Atoi(s[loc[0]:loc[1]])
		s = s[:loc[0]]
	}

	s = junkRe.ReplaceAllString(s, " ")
	s = strings.Join(strings.Fields(s), " ")
	// Leftovers of "(2010)" or "- 1080p" style suffixes.
	s = strings.TrimRight(s, " -([{")
	return strings.TrimSpace(s), year
}

// seasonName normalises a season folder word and number. A bare "S" or
// "SO" abbreviation becomes "Season"; other words keep their own spelling.
func seasonName(word, number string) string {
	n, err := strconv.Atoi(number)
	if err != nil {
		n = 0
	}
	label := "Season"
	if upper := strings.ToUpper(word); upper != "S" && upper != "SO" {
		label = cases.Title(language.Und).String(word)
	}
	return fmt.Sprintf("%s %02d", label, n)
}

func episodeNumber(m []string) int {
	if m == nil {
		return 0
	}
	raw := m[2]
	if raw == "" {
		raw = m[4]
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}
