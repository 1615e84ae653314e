// Package manifest reads and rewrites the game's System.json.
//
// The file carries the hex encryptionKey and the hasEncryptedAudio /
// hasEncryptedImages flags the engine consults at load time. Read validates
// the key up front so a malformed manifest fails before any asset is touched;
// MarkDecrypted and Write run once, after every asset transform has finished.
//
// Unknown fields are carried through verbatim as raw JSON.
package manifest
