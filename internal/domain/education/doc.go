// Package education models classes taught at the space, their students
// and discount codes, and the guild orientations members must complete
// before using equipment.
package education
