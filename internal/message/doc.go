// Package message parses and serializes the HDF5 object header messages the
// engine understands.
//
// Supported message types:
//
//   - Dataspace (0x0001): extents of a dataset or attribute. See [Dataspace].
//   - Link Info (0x0002) and Group Info (0x000A): bookkeeping for groups that
//     store links in the header. See [LinkInfo], [GroupInfo].
//   - Datatype (0x0003): element type. See [Datatype].
//   - Link (0x0006): a named link to another object. See [Link].
//   - Data Layout (0x0008): where dataset values live. See [DataLayout].
//   - Attribute (0x000C): a named, typed value. See [Attribute].
//   - Continuation (0x0010): pointer to more header messages. See [Continuation].
//   - Symbol Table (0x0011): legacy group B-tree and heap. See [SymbolTable].
//
// Every other message, and any supported message that fails to parse or is
// marked shared, is kept as an [Unknown] holding its raw bytes and flags so a
// header can be rewritten without losing it.
//
// Serialization always emits the newest version of each message the engine
// writes (dataspace v2, attribute v3, link v1, layout v3). Datatypes keep
// the properties they were parsed with so a rewritten attribute carries its
// original type byte for byte.
package message
