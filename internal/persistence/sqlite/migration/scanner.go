package migration

import (
	"crypto/sha256"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// {version}_{description}.sql with a numeric version.
var fileNamePattern = regexp.MustCompile(`^(\d+)_([a-zA-Z0-9_-]+)\.sql$`)

// Scan reads every migration script under dir in fsys and returns them sorted by version.
func Scan(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, newMigrationError("", dir, "read directory", err)
	}

	var migrations []Migration
	seen := make(map[string]string)

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		m, err := parseFile(fsys, dir, entry.Name())
		if err != nil {
			return nil, err
		}

		if existing, ok := seen[m.Version]; ok {
			return nil, newMigrationError(m.Version, entry.Name(), "check duplicates",
				fmt.Errorf("%w: also defined in %s", ErrDuplicateVersion, existing))
		}
		seen[m.Version] = entry.Name()
		migrations = append(migrations, m)
	}

	sort.Slice(migrations, func(i, j int) bool {
		return versionNumber(migrations[i].Version) < versionNumber(migrations[j].Version)
	})

	return migrations, nil
}

// ValidateFileName checks that name follows the {version}_{description}.sql convention.
func ValidateFileName(name string) error {
	if !fileNamePattern.MatchString(name) {
		return fmt.Errorf("%w: filename %q does not match '{version}_{description}.sql'",
			ErrInvalidMigrationFile, name)
	}
	return nil
}

func parseFile(fsys fs.FS, dir, name string) (Migration, error) {
	if err := ValidateFileName(name); err != nil {
		return Migration{}, newMigrationError("", name, "validate filename", err)
	}
	matches := fileNamePattern.FindStringSubmatch(name)
	version := matches[1]

	content, err := fs.ReadFile(fsys, path.Join(dir, name))
	if err != nil {
		return Migration{}, newMigrationError(version, name, "read file", err)
	}

	sqlText := string(content)
	if len(statements(sqlText)) == 0 {
		return Migration{}, newMigrationError(version, name, "validate content",
			fmt.Errorf("%w: no SQL statements", ErrInvalidMigrationFile))
	}

	description := descriptionFromContent(sqlText)
	if description == "" {
		description = strings.ReplaceAll(matches[2], "_", " ")
	}

	return Migration{
		Version:     version,
		Description: description,
		SQL:         sqlText,
		Name:        name,
		Checksum:    fmt.Sprintf("%x", sha256.Sum256(content)),
	}, nil
}

// descriptionFromContent returns the text of a leading "-- Description:" comment.
func descriptionFromContent(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "--") {
			break
		}
		if rest, ok := strings.CutPrefix(line, "-- Description:"); ok {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}

// statements splits a script on semicolons and drops comment-only fragments.
func statements(sqlText string) []string {
	var out []string
	for _, stmt := range strings.Split(sqlText, ";") {
		var lines []string
		for _, line := range strings.Split(stmt, "\n") {
			line = strings.TrimSpace(line)
			if line != "" && !strings.HasPrefix(line, "--") {
				lines = append(lines, line)
			}
		}
		if len(lines) > 0 {
			out = append(out, strings.Join(lines, "\n"))
		}
	}
	return out
}

func versionNumber(version string) int {
	n, _ := strconv.Atoi(version)
	return n
}
