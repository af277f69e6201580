//go:build !linux

package renamer

func renameNoReplace(src, dst string) error {
	return renameChecked(src, dst)
}
