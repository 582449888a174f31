// Package directory turns completed onboarding submissions into published
// business listings. The Materializer owns slug generation and the single
// atomic insert, Service is the public read surface (approved listings
// only), and Moderation drives the admin approval workflow.
package directory
