package main

// Sample is a message fed through the /make-nice command.
type Sample struct {
	Name string
	Text string
}

// Samples are blunt workplace messages at increasing lengths, used for
// latency measurement.
var Samples = []Sample{
	{
		Name: "tiny",
		Text: "where is the report",
	},
	{
		Name: "short",
		Text: "this PR is a mess. nobody can review 40 files at once, split it up before asking me again.",
	},
	{
		Name: "medium",
		Text: `I've asked three times now for the staging credentials and still nothing. I can't test anything without them and I'm not going to keep chasing this. Either send them today or tell me who actually owns this so I can stop wasting my time.`,
	},
	{
		Name: "long",
		Text: `The release notes you sent out were wrong. Half the features listed aren't even merged, the migration steps skip the part where you have to rotate the keys, and the support team is now getting tickets from customers who followed them.

Next time run it past engineering before it goes out. I had to spend my whole morning cleaning this up instead of working on the outage follow-up, which is the thing that actually matters this week.

Fix the notes, post a correction in the customer channel, and stop announcing stuff before it ships.`,
	},
}

// QualitySamples cover different kinds of bluntness, one run each,
// printed side by side with the rewrite.
var QualitySamples = []Sample{
	{
		Name: "demand",
		Text: "send me the numbers now",
	},
	{
		Name: "dismissive",
		Text: "that idea won't work, we tried it last year, moving on",
	},
	{
		Name: "blame",
		Text: "you broke the build again. check your code before pushing",
	},
	{
		Name: "sarcastic",
		Text: "great, another meeting that could have been an email",
	},
	{
		Name: "refusal",
		Text: "no. I'm not picking up the on-call shift this weekend, find someone else",
	},
	{
		Name: "unicode",
		Text: "¿otra vez tarde? the client has been waiting since 9am 🙄",
	},
}
