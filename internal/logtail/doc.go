// Package logtail reads the newest glog files hangar wrote.
//
// The TUI logs to files under the configured log_dir because it owns the
// terminal. glog writes one file per severity and run, named
// "<program>.<host>.<user>.log.<SEVERITY>.<yyyymmdd-hhmmss>.<pid>", and
// points a "<program>.<SEVERITY>" symlink at the current one. Each file
// holds its own severity and everything above it.
//
//	lines, err := logtail.Tail(cfg.LogDir, "hangar", logtail.Warning, 200)
package logtail
