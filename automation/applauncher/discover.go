package applauncher

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// discoverApps enumerates installed applications for the given OS. Best
// effort: unreadable directories are skipped and an empty list is valid.
func discoverApps(goos string) []App {
	switch goos {
	case "darwin":
		return discoverMac()
	case "windows":
		return discoverWindows()
	default:
		return discoverLinux()
	}
}

// discoverLinux parses .desktop entries from the standard application dirs.
func discoverLinux() []App {
	dirs := []string{
		"/usr/share/applications",
		"/usr/local/share/applications",
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".local", "share", "applications"))
	}

	seen := make(map[string]bool)
	var apps []App
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".desktop") {
				continue
			}
			app, ok := parseDesktopFile(filepath.Join(dir, e.Name()))
			if !ok || seen[app.Name] {
				continue
			}
			seen[app.Name] = true
			apps = append(apps, app)
		}
	}
	return apps
}

// parseDesktopFile extracts Name and Exec from the [Desktop Entry] section.
func parseDesktopFile(path string) (App, bool) {
	f, err := os.Open(path)
	if err != nil {
		return App{}, false
	}
	defer f.Close()

	var app App
	inEntry := false
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "[Desktop Entry]":
			inEntry = true
		case strings.HasPrefix(line, "["):
			inEntry = false
		case inEntry && strings.HasPrefix(line, "Name=") && app.Name == "":
			app.Name = strings.TrimPrefix(line, "Name=")
		case inEntry && strings.HasPrefix(line, "Exec=") && app.Exec == "":
			app.Exec = strings.TrimPrefix(line, "Exec=")
		case inEntry && line == "NoDisplay=true":
			return App{}, false
		}
	}
	return app, app.Name != ""
}

// discoverMac lists .app bundles in the standard application folders.
func discoverMac() []App {
	dirs := []string{"/Applications", "/System/Applications"}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, "Applications"))
	}

	seen := make(map[string]bool)
	var apps []App
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if !strings.HasSuffix(e.Name(), ".app") {
				continue
			}
			name := strings.TrimSuffix(e.Name(), ".app")
			if seen[name] {
				continue
			}
			seen[name] = true
			apps = append(apps, App{Name: name})
		}
	}
	return apps
}

// discoverWindows walks Start Menu shortcuts.
func discoverWindows() []App {
	var roots []string
	if pd := os.Getenv("ProgramData"); pd != "" {
		roots = append(roots, filepath.Join(pd, "Microsoft", "Windows", "Start Menu", "Programs"))
	}
	if appData := os.Getenv("APPDATA"); appData != "" {
		roots = append(roots, filepath.Join(appData, "Microsoft", "Windows", "Start Menu", "Programs"))
	}

	seen := make(map[string]bool)
	var apps []App
	for _, root := range roots {
		_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			if !strings.HasSuffix(d.Name(), ".lnk") {
				return nil
			}
			name := strings.TrimSuffix(d.Name(), ".lnk")
			if !seen[name] {
				seen[name] = true
				apps = append(apps, App{Name: name})
			}
			return nil
		})
	}
	return apps
}
