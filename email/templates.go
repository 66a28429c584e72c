package email

import "fmt"

// Message is a rendered email ready for delivery.
type Message struct {
	Subject   string
	PlainText string
	HTML      string
}

// MatchAlert tells a lost-item owner that a possibly matching item was found.
func MatchAlert(lostTitle, foundTitle, location string) Message {
	return Message{
		Subject:   "A found item may match your lost report",
		PlainText: fmt.Sprintf("Someone reported finding %q near %s. It may match your lost item %q. Log in to review the match.", foundTitle, location, lostTitle),
		HTML: fmt.Sprintf(`<p><strong>College Reclaim</strong></p>
<p>Someone reported finding <strong>%s</strong> near %s.</p>
<p>It may match your lost item <strong>%s</strong>. Log in to review the match.</p>`,
			foundTitle, location, lostTitle),
	}
}

// PasswordOTP carries a one-time code for password reset or account setup.
func PasswordOTP(code string, setup bool) Message {
	action := "reset your password"
	if setup {
		action = "finish setting up your coordinator account"
	}
	return Message{
		Subject:   "Your College Reclaim verification code",
		PlainText: fmt.Sprintf("Use code %s to %s. The code expires in 15 minutes.", code, action),
		HTML: fmt.Sprintf(`<p><strong>College Reclaim</strong></p>
<p>Use the code below to %s. It expires in 15 minutes.</p>
<p style="font-size:24px;letter-spacing:4px"><strong>%s</strong></p>`,
			action, code),
	}
}

// CoordinatorReceived confirms a coordinator application was submitted.
func CoordinatorReceived(name string) Message {
	return Message{
		Subject:   "We received your coordinator request",
		PlainText: fmt.Sprintf("Hi %s, your coordinator access request was received and is waiting for admin review.", name),
		HTML: fmt.Sprintf(`<p><strong>College Reclaim</strong></p>
<p>Hi %s, your coordinator access request was received and is waiting for admin review.</p>`, name),
	}
}

// CoordinatorAdminAlert notifies the admin inbox of a new application.
func CoordinatorAdminAlert(name, email, reason string) Message {
	return Message{
		Subject:   "New coordinator access request",
		PlainText: fmt.Sprintf("%s <%s> requested coordinator access: %s", name, email, reason),
		HTML: fmt.Sprintf(`<p><strong>College Reclaim</strong></p>
<p><strong>%s</strong> &lt;%s&gt; requested coordinator access:</p>
<blockquote>%s</blockquote>`, name, email, reason),
	}
}

// CoordinatorDecision tells the applicant the outcome of the review.
func CoordinatorDecision(name string, approved bool) Message {
	if approved {
		return Message{
			Subject:   "Your coordinator request was approved",
			PlainText: fmt.Sprintf("Hi %s, your coordinator request was approved. A setup code follows in a separate email.", name),
			HTML: fmt.Sprintf(`<p><strong>College Reclaim</strong></p>
<p>Hi %s, your coordinator request was approved. A setup code follows in a separate email.</p>`, name),
		}
	}
	return Message{
		Subject:   "Your coordinator request was declined",
		PlainText: fmt.Sprintf("Hi %s, your coordinator request was declined by an administrator.", name),
		HTML: fmt.Sprintf(`<p><strong>College Reclaim</strong></p>
<p>Hi %s, your coordinator request was declined by an administrator.</p>`, name),
	}
}

// Broadcast is an admin announcement.
func Broadcast(title, body string) Message {
	return Message{
		Subject:   title,
		PlainText: body,
		HTML: fmt.Sprintf(`<p><strong>College Reclaim</strong></p>
<p><strong>%s</strong></p>
<p>%s</p>`, title, body),
	}
}
