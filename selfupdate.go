package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"runtime"

	"github.com/minio/selfupdate"
	"github.com/ulikunitz/xz"
	"golang.org/x/mod/semver"
)

// latestReleaseName asks the GitHub API for the name of the newest release.
func latestReleaseName() (string, error) {
	url := fmt.Sprintf("https://api.github.com/repos/%s/releases/latest", GithubRepo)
	resp, err := http.Get(url)
	if err != nil {
		return "", fmt.Errorf("check for updates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("GitHub API returned HTTP %d", resp.StatusCode)
	}

	var release struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", fmt.Errorf("parse release info: %w", err)
	}
	return release.Name, nil
}

// releaseArtifactURL builds the download URL for this platform's
// xz-compressed binary.
func releaseArtifactURL(release string) string {
	ext := "xz"
	if runtime.GOOS == "windows" {
		ext = "exe.xz"
	}
	return fmt.Sprintf("https://github.com/%s/releases/download/%s/pngtoico-%s-%s.%s",
		GithubRepo, release, runtime.GOOS, runtime.GOARCH, ext)
}

// fetchArtifact downloads the release artifact and returns a reader over
// the decompressed binary. The caller must close the returned closer.
func fetchArtifact(url string) (io.Reader, io.Closer, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, nil, fmt.Errorf("download: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, nil, fmt.Errorf("download returned HTTP %d", resp.StatusCode)
	}
	r, err := xz.NewReader(resp.Body)
	if err != nil {
		resp.Body.Close()
		return nil, nil, fmt.Errorf("xz decompression: %w", err)
	}
	return r, resp.Body, nil
}

// selfUpdate replaces the running binary with the latest GitHub release
// when one is newer than the current build.
func selfUpdate() {
	fmt.Printf("Current version: %s-%s\n", Version, CommitHash)

	latest, err := latestReleaseName()
	if err != nil {
		log.Fatalf("%v", err)
	}
	fmt.Printf("Latest release: %s\n", latest)

	switch semver.Compare(latest, Version) {
	case -1:
		fmt.Println("You have a newer version than the latest release.")
		return
	case 0:
		fmt.Println("Already up to date.")
		return
	}

	fmt.Println("New version available, upgrading...")
	if Version == "v0.0.0" {
		fmt.Print("Development build detected, press Enter to proceed: ")
		bufio.NewReader(os.Stdin).ReadBytes('\n')
	}

	url := releaseArtifactURL(latest)
	opts := selfupdate.Options{}
	if err := opts.CheckPermissions(); err != nil {
		fmt.Printf("Cannot update in place (permission denied).\nDownload manually: %s\n", url)
		return
	}

	fmt.Printf("Downloading %s...\n", url)
	r, closer, err := fetchArtifact(url)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer closer.Close()

	if err := selfupdate.Apply(r, opts); err != nil {
		log.Fatalf("Update failed: %v", err)
	}
	fmt.Printf("Updated to %s successfully.\n", latest)
}
