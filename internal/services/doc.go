// package services contains HTTP clients for the Snap2Style backend:
// the styling endpoint, the auth endpoints, and a raw API escape hatch.
package services
