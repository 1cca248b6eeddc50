// Package billing holds the money side of the makerspace: orders that
// accumulate on a member's tab, invoices raised against them, revenue
// splits that divide order income between the org, guilds and people,
// payouts produced from those splits, and recurring subscriptions.
//
// Order, Invoice and Payout amounts are integer cents. Prices on plans
// and percentages are decimals.
package billing
