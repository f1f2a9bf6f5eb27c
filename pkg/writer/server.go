package writer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/quiltinst/pkg/fsutil"
	"github.com/glorpus-work/quiltinst/pkg/model"
	"github.com/glorpus-work/quiltinst/pkg/platform"
)

// Server layout file names.
const (
	LauncherPropertiesFile = "quilt-server-launcher.properties"
	LaunchJarFile          = "quilt-server-launch.jar"
	ShellScriptFile        = "start.sh"
	BatchScriptFile        = "start.bat"

	// launchPropertiesEntry is read by the launcher main class from inside the launch jar.
	launchPropertiesEntry = "quilt-server-launch.properties"
	manifestEntry         = "META-INF/MANIFEST.MF"
	manifestLineLimit     = 72
)

// WriteServer writes the launcher properties and launch jar and, when
// requested, a start script for the target OS.
func (w *Writer) WriteServer(ctx context.Context, m *model.InstallManifest, req model.ServerInstallRequest, dst fsutil.Destination) error {
	if req.DownloadBaseJar {
		if _, ok := fsutil.Lookup(dst, model.ServerJarPath); !ok {
			return fsError(model.ServerJarPath, fmt.Errorf("vanilla server jar is missing: %w", os.ErrNotExist))
		}
	}

	props := "serverJarPath=" + model.ServerJarPath + "\n"
	if err := w.put(dst, LauncherPropertiesFile, []byte(props), fsutil.FileModeDefault); err != nil {
		return err
	}
	if err := w.writeLaunchJar(ctx, m, dst); err != nil {
		return err
	}

	if !req.GenerateLaunchScript {
		return nil
	}
	name, script := w.launchScript()
	mode := os.FileMode(fsutil.FileModeExec)
	if name == BatchScriptFile {
		mode = fsutil.FileModeDefault
	}
	return w.put(dst, name, []byte(script), mode)
}

func (w *Writer) writeLaunchJar(ctx context.Context, m *model.InstallManifest, dst fsutil.Destination) error {
	final, err := dst.StagePath(LaunchJarFile)
	if err != nil {
		return fsError(LaunchJarFile, err)
	}
	if err := fsutil.EnsureFileDir(final); err != nil {
		return fsError(LaunchJarFile, err)
	}
	content, err := os.MkdirTemp(filepath.Dir(final), ".jar-*")
	if err != nil {
		return fsError(LaunchJarFile, err)
	}
	defer func() { _ = os.RemoveAll(content) }()

	mainClass := m.LauncherMainClass
	if mainClass == "" {
		mainClass = m.MainClass
	}
	files := map[string]string{
		manifestEntry:         jarManifest(mainClass, m.ClassPath()),
		launchPropertiesEntry: "launch.mainClass=" + m.MainClass + "\n",
	}
	for name, body := range files {
		p := filepath.Join(content, filepath.FromSlash(name))
		if err := fsutil.EnsureFileDir(p); err != nil {
			return fsError(LaunchJarFile, err)
		}
		if err := os.WriteFile(p, []byte(body), fsutil.FileModeDefault); err != nil {
			return fsError(LaunchJarFile, err)
		}
	}

	tmp := filepath.Join(filepath.Dir(content), ".launch-"+filepath.Base(content)+".jar")
	defer func() { _ = os.Remove(tmp) }()
	if err := w.archives.CreateJar(ctx, content, tmp); err != nil {
		return fsError(LaunchJarFile, err)
	}
	if err := os.Chmod(tmp, fsutil.FileModeDefault); err != nil {
		return fsError(LaunchJarFile, err)
	}
	if err := os.Rename(tmp, final); err != nil {
		return fsError(LaunchJarFile, err)
	}
	w.log.Debug("wrote launch jar", "path", LaunchJarFile, "mainClass", mainClass, "libraries", len(m.ClassPath()))
	return nil
}

// jarManifest renders a jar manifest. Lines longer than 72 bytes continue on
// the next line after a single space.
func jarManifest(mainClass string, classPath []string) string {
	var b strings.Builder
	writeManifestAttr(&b, "Manifest-Version", "1.0")
	writeManifestAttr(&b, "Main-Class", mainClass)
	if len(classPath) > 0 {
		writeManifestAttr(&b, "Class-Path", strings.Join(classPath, " "))
	}
	b.WriteString("\r\n")
	return b.String()
}

func writeManifestAttr(b *strings.Builder, name, value string) {
	line := name + ": " + value
	limit := manifestLineLimit
	for len(line) > limit {
		b.WriteString(line[:limit])
		b.WriteString("\r\n ")
		line = line[limit:]
		limit = manifestLineLimit - 1
	}
	b.WriteString(line)
	b.WriteString("\r\n")
}

// launchScript returns the script name and content for the target OS.
func (w *Writer) launchScript() (string, string) {
	cmd := fmt.Sprintf("java -Xmx%s -jar %s nogui", w.memory, LaunchJarFile)
	if w.os == platform.OSWindows {
		return BatchScriptFile, strings.Join([]string{"@echo off", cmd, "pause", ""}, "\r\n")
	}
	return ShellScriptFile, strings.Join([]string{"#!/usr/bin/env sh", cmd, ""}, "\n")
}
