// package models defines the data model for the s2s styling client:
// the pending upload, submission requests/results, and the persisted
// records backing result restore, sessions, and generation history.
package models
