// Package storage maps strip dates to files on disk.
//
// Strips live under {save_folder}/{year}/ with a name built from a pattern
// such as "Comic {date}.gif". An optional reading folder receives a copy of
// every strip with the same relative layout.
//
// The presence of a strip file is the only download state: NextPendingDate
// walks forward from the start date and stops at the first missing file, so
// re-running after an interruption resumes where the previous run stopped.
//
// Usage:
//
//	manager, err := storage.NewManager("/comics", "", storage.DefaultNamePattern)
//	target, err := manager.NextPendingDate(start)
//	if err := manager.EnsureFolders(target); err != nil {
//	    return err
//	}
//	size, err := manager.SaveImage(body, target)
package storage
