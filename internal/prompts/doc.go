// Package prompts stores the text prompts sent to language models as a
// directory of .txt files. Subdirectories become dot-notation key
// prefixes, so summary/content.txt is addressed as "summary.content".
// Embedded defaults are written for missing keys the first time a store
// opens a directory.
package prompts
