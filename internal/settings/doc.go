// Package settings persists the user's application settings to a JSON file
// and reconciles the on-disk document with the in-memory copy served to the
// UI layer.
//
// Loading reads the file, moves corrupted content aside to a ".bak" companion,
// renames legacy fields forward, and deep-merges what remains onto a freshly
// constructed default document. Updates arrive as partial documents and are
// merged onto the live document before it is written back.
//
// A Store is owned by the process composition root and handed to whatever
// registers the get/update operations; there is no package-level instance.
package settings
