// Package fileutil holds the small file primitives shared by the workspace
// and staging code: directory creation and single-file copies that can keep
// the source permissions and fsync the result.
package fileutil
