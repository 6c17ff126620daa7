//go:build !release

package room

const assertionsEnabled = true
