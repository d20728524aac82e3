// Package superblock locates, parses and writes the HDF5 superblock.
//
// The superblock is searched for at byte 0 and then at 512, 1024 and 2048
// (files with a user block). Versions 0 through 3 are read. For versions 0
// and 1 the root group symbol table entry is decoded as well, since legacy
// files keep the root B-tree and local heap addresses in its scratch pad.
//
// Files written by this module always carry a version 2 superblock with
// 8-byte offsets and lengths, at byte 0.
package superblock
