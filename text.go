package main

// Fixed page copy shown around the interactive parts.
var (
	ContactTitle = "Contact Me"

	ContactIntro = `Have a question, an opportunity, or just want to say hello?
	Leave a message below and it will land straight in my inbox.`

	PrivacyNotice = `This site records page visits with a hashed, salted form of your IP address
	so that no raw address is ever stored. Requests sent with "Do Not Track" are not recorded,
	and visit records are deleted after 12 months. Contact form messages are delivered by email
	and are not kept on this server.`
)
