// Reelpick - Three-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package catalog

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

const moviesCSV = `movieId,title,genres
1,Toy Story (1995),Adventure|Animation|Children|Comedy|Fantasy
2,Jumanji (1995),Adventure|Children|Fantasy
3,"Heat (1995)",Action|Crime|Thriller
4,GoldenEye (1995),Action|Adventure|Thriller
5,Casino (1995),Crime|Drama
6,Untitled Short,(no genres listed)
`

const tagsCSV = `userId,movieId,tag,timestamp
10,1,Pixar,1139045764
11,1,pixar,1139045765
12,1,  fun  ,1139045766
10,5,mafia,1139045767
10,99,orphan,1139045768
`

func TestParse(t *testing.T) {
	c, err := Parse(strings.NewReader(moviesCSV), strings.NewReader(tagsCSV), Options{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if c.Len() != 6 {
		t.Fatalf("Len() = %d, want 6", c.Len())
	}

	toy, err := c.Resolve("Toy Story (1995)")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if toy.Year != 1995 {
		t.Errorf("Year = %d, want 1995", toy.Year)
	}
	if len(toy.Genres) != 5 || toy.Genres[0] != "Adventure" {
		t.Errorf("Genres = %v", toy.Genres)
	}
	if !reflect.DeepEqual(toy.Tags, []string{"fun", "pixar"}) {
		t.Errorf("Tags = %v, want [fun pixar]", toy.Tags)
	}
	if toy.TagCounts["pixar"] != 2 {
		t.Errorf("TagCounts[pixar] = %d, want 2", toy.TagCounts["pixar"])
	}

	short, err := c.Resolve("Untitled Short")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if short.Genres != nil || short.Year != 0 {
		t.Errorf("Untitled Short = %+v, want no genres and no year", short)
	}
}

func TestParse_NilTags(t *testing.T) {
	c, err := Parse(strings.NewReader(moviesCSV), nil, Options{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	m, _ := c.Movie(1)
	if m.Tags != nil {
		t.Errorf("Tags = %v, want nil", m.Tags)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		movies   string
		tags     string
		wantErr  error
		wantLine int
	}{
		{
			name:    "empty file",
			movies:  "",
			wantErr: ErrEmptyCatalog,
		},
		{
			name:    "header only",
			movies:  "movieId,title,genres\n",
			wantErr: ErrEmptyCatalog,
		},
		{
			name:     "missing column",
			movies:   "movieId,name,genres\n1,A,Drama\n",
			wantErr:  ErrMissingColumn,
			wantLine: 1,
		},
		{
			name:     "bad id",
			movies:   "movieId,title,genres\n1,A,Drama\nx,B,Drama\n",
			wantErr:  ErrMalformedRow,
			wantLine: 3,
		},
		{
			name:     "short row",
			movies:   "movieId,title,genres\n1,A\n",
			wantErr:  ErrMalformedRow,
			wantLine: 2,
		},
		{
			name:    "duplicate title",
			movies:  "movieId,title,genres\n1,A,Drama\n2,A,Comedy\n",
			wantErr: ErrDuplicateTitle,
		},
		{
			name:    "duplicate id",
			movies:  "movieId,title,genres\n1,A,Drama\n1,B,Comedy\n",
			wantErr: ErrDuplicateID,
		},
		{
			name:     "tags missing column",
			movies:   "movieId,title,genres\n1,A,Drama\n",
			tags:     "userId,movieId\n1,1\n",
			wantErr:  ErrMissingColumn,
			wantLine: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tags io.Reader
			if tt.tags != "" {
				tags = strings.NewReader(tt.tags)
			}
			_, err := Parse(strings.NewReader(tt.movies), tags, Options{})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Parse() error = %v, want %v", err, tt.wantErr)
			}
			var le *LoadError
			if !errors.As(err, &le) {
				t.Fatalf("Parse() error is %T, want *LoadError", err)
			}
			if tt.wantLine != 0 && le.Line != tt.wantLine {
				t.Errorf("LoadError.Line = %d, want %d", le.Line, tt.wantLine)
			}
		})
	}
}

func TestParse_HeaderCaseAndBOM(t *testing.T) {
	src := "\ufeffMOVIEID,Genres,Title\n7,Drama,Se7en (1995)\n"
	c, err := Parse(strings.NewReader(src), nil, Options{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	m, err := c.Resolve("Se7en (1995)")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if m.ID != 7 || !reflect.DeepEqual(m.Genres, []string{"Drama"}) {
		t.Errorf("movie = %+v", m)
	}
}

func TestLoad_Files(t *testing.T) {
	dir := t.TempDir()
	moviesPath := filepath.Join(dir, "movies.csv")
	tagsPath := filepath.Join(dir, "tags.csv")
	if err := os.WriteFile(moviesPath, []byte(moviesCSV), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(tagsPath, []byte(tagsCSV), 0o600); err != nil {
		t.Fatal(err)
	}

	c, err := Load(moviesPath, tagsPath, Options{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Len() != 6 {
		t.Errorf("Len() = %d, want 6", c.Len())
	}

	_, err = Load(filepath.Join(dir, "missing.csv"), "", Options{})
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("Load(missing) error = %v, want *LoadError", err)
	}
	if !strings.HasSuffix(le.Path, "missing.csv") {
		t.Errorf("LoadError.Path = %q", le.Path)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load(missing) error does not wrap os.ErrNotExist: %v", err)
	}
}

func TestLoad_PathOnParseError(t *testing.T) {
	dir := t.TempDir()
	moviesPath := filepath.Join(dir, "movies.csv")
	if err := os.WriteFile(moviesPath, []byte("movieId,title,genres\nx,A,Drama\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := Load(moviesPath, "", Options{})
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("Load() error = %v, want *LoadError", err)
	}
	if le.Path != moviesPath {
		t.Errorf("LoadError.Path = %q, want %q", le.Path, moviesPath)
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("Error() = %q, want line number", err.Error())
	}
}

func TestParseYearAndGenres(t *testing.T) {
	tests := []struct {
		title string
		want  int
	}{
		{"Heat (1995)", 1995},
		{"Heat (1995) ", 1995},
		{"2001: A Space Odyssey (1968)", 1968},
		{"Babylon 5", 0},
		{"Something (19xx)", 0},
	}
	for _, tt := range tests {
		if got := parseYear(tt.title); got != tt.want {
			t.Errorf("parseYear(%q) = %d, want %d", tt.title, got, tt.want)
		}
	}

	if got := parseGenres("Drama|Drama| |Crime"); !reflect.DeepEqual(got, []string{"Drama", "Crime"}) {
		t.Errorf("parseGenres() = %v", got)
	}
	if got := parseGenres(noGenres); got != nil {
		t.Errorf("parseGenres(noGenres) = %v, want nil", got)
	}
}

const ratingsCSV = `userId,movieId,rating,timestamp
1,1,4.0,964982703
1,3,4.5,964981247
2,1,3.5,
2,99,5.0,964982224
3,5,2.0,964983815
`

func TestParseRatings(t *testing.T) {
	c, err := Parse(strings.NewReader(moviesCSV), nil, Options{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	ratings, stats, err := ParseRatings(strings.NewReader(ratingsCSV), c)
	if err != nil {
		t.Fatalf("ParseRatings() error = %v", err)
	}

	want := RatingsStats{Rows: 5, Kept: 4, DroppedUnknownMovie: 1, Users: 3, Movies: 3}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
	if len(ratings) != 4 {
		t.Fatalf("len(ratings) = %d, want 4", len(ratings))
	}
	if !ratings[0].Timestamp.Equal(time.Unix(964982703, 0)) {
		t.Errorf("Timestamp = %v", ratings[0].Timestamp)
	}
	if !ratings[2].Timestamp.IsZero() {
		t.Errorf("blank timestamp parsed as %v", ratings[2].Timestamp)
	}
	if ratings[1].Score != 4.5 {
		t.Errorf("Score = %v, want 4.5", ratings[1].Score)
	}
}

func TestParseRatings_Errors(t *testing.T) {
	c, err := Parse(strings.NewReader(moviesCSV), nil, Options{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	tests := []struct {
		name     string
		src      string
		wantErr  error
		wantLine int
	}{
		{
			name:     "duplicate pair",
			src:      "userId,movieId,rating\n1,1,4\n1,2,3\n1,1,5\n",
			wantErr:  ErrDuplicateRating,
			wantLine: 4,
		},
		{
			name:     "duplicate pair on unknown movie",
			src:      "userId,movieId,rating\n1,99,4\n1,99,5\n",
			wantErr:  ErrDuplicateRating,
			wantLine: 3,
		},
		{
			name:     "nan score",
			src:      "userId,movieId,rating\n1,1,NaN\n",
			wantErr:  ErrMalformedRow,
			wantLine: 2,
		},
		{
			name:     "inf score",
			src:      "userId,movieId,rating\n1,1,+Inf\n",
			wantErr:  ErrMalformedRow,
			wantLine: 2,
		},
		{
			name:     "text score",
			src:      "userId,movieId,rating\n1,1,good\n",
			wantErr:  ErrMalformedRow,
			wantLine: 2,
		},
		{
			name:     "bad timestamp",
			src:      "userId,movieId,rating,timestamp\n1,1,4,yesterday\n",
			wantErr:  ErrMalformedRow,
			wantLine: 2,
		},
		{
			name:     "missing rating column",
			src:      "userId,movieId\n1,1\n",
			wantErr:  ErrMissingColumn,
			wantLine: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseRatings(strings.NewReader(tt.src), c)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseRatings() error = %v, want %v", err, tt.wantErr)
			}
			var le *LoadError
			if !errors.As(err, &le) {
				t.Fatalf("error is %T, want *LoadError", err)
			}
			if le.Line != tt.wantLine {
				t.Errorf("Line = %d, want %d", le.Line, tt.wantLine)
			}
		})
	}
}

func TestParseRatings_Empty(t *testing.T) {
	ratings, stats, err := ParseRatings(strings.NewReader(""), nil)
	if err != nil {
		t.Fatalf("ParseRatings() error = %v", err)
	}
	if len(ratings) != 0 || stats.Rows != 0 {
		t.Errorf("ratings = %v, stats = %+v", ratings, stats)
	}
}

func TestLoadRatings_File(t *testing.T) {
	c, err := Parse(strings.NewReader(moviesCSV), nil, Options{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	path := filepath.Join(t.TempDir(), "ratings.csv")
	if err := os.WriteFile(path, []byte(ratingsCSV), 0o600); err != nil {
		t.Fatal(err)
	}

	ratings, _, err := LoadRatings(path, c)
	if err != nil {
		t.Fatalf("LoadRatings() error = %v", err)
	}
	if len(ratings) != 4 {
		t.Errorf("len(ratings) = %d, want 4", len(ratings))
	}

	if _, _, err := LoadRatings(path+".missing", c); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadRatings(missing) error = %v", err)
	}
}
