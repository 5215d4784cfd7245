// Package backup keeps snapshots of generator config files so rewrites
// such as the legacy-key migration performed by "projgen config fmt" can be
// undone.
//
// Each backup is a timestamped directory holding copies of the files and a
// manifest recording their original paths, permissions and SHA256 hashes:
//
//	<DataHome>/projgen/backups/
//	└── {name}/
//	    └── {id}/
//	        ├── manifest.json
//	        └── {copied files...}
//
// The name groups backups of one config file (see [NameFor]). Backup prunes
// to the retention count after every snapshot.
//
//	mgr := backup.NewManager(backup.WithFs(fsys))
//	m, err := mgr.Backup(backup.NameFor(path), "fmt", []string{path, overlay})
//	...
//	_, err = mgr.Restore(backup.NameFor(path), m.ID)
//
// Restore verifies every file against its manifest hash before writing
// anything and returns [ErrBackupCorrupted] on mismatch.
package backup
