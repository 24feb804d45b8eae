// Package site is the dynamic personal website: the home, music, game,
// learning and NLP pages, the /static/ file tree, and the response hooks
// wrapped around them.
package site
