package stderr

import "syscall"

// dup2 uses Dup3, linux/arm64 has no dup2 syscall.
func dup2(oldfd, newfd int) error {
	return syscall.Dup3(oldfd, newfd, 0)
}
