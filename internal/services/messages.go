package services

// User-visible chat texts. Kept in one place so wording stays consistent
// between the conversation service and the orchestrator.
const (
	msgWelcome = `👋 Hi! I compare resumes against job postings.

Send /match to start: I will ask for a resume, then for a job posting, and return a scored compatibility report across four dimensions (title fit, skills, experience, conditions).

/help shows the full instructions.`

	msgHelp = `ℹ️ How this works:

1. Send /match to start a new analysis.
2. Send the resume: paste the text or attach a PDF.
3. Send the job posting the same way.
4. Wait for the report: four scored dimensions plus an overall verdict.

Other commands:
/cancel stops the current flow and clears collected documents.
/help shows this message.

You can also just write "match" or "start" to begin.`

	msgIdleHint = `🤔 I did not catch that. Send /match (or just write "match") to compare a resume against a job posting, or /help for instructions.`

	msgSendResume = `📄 Let's go! Send the resume first: paste the full text or attach a PDF file.`

	msgSendJobPost = `✅ Resume received. Now send the job posting: paste the text or attach a PDF file.`

	msgAnalyzing = `🤖 Both documents are in. Running the analysis, this usually takes about a minute...`

	msgBusy = `⏳ An analysis is already running for you. Wait for the report, or send /cancel to abort.`

	msgAnalysisRunning = `⏳ Your analysis is still in progress. The report will arrive here shortly.`

	msgCancelled = `🗑 Cancelled. All collected documents are discarded. Send /match whenever you want to start over.`

	msgNothingToCancel = `There is nothing to cancel right now. Send /match to start an analysis.`

	msgUnknownCommand = `🤷 Unknown command. Try /match, /help or /cancel.`

	msgDocumentExpected = `📎 I can only read text or a PDF file here. Please paste the document text or attach a PDF.`

	msgAnalysisFailed = `😞 The analysis could not be completed this time. Nothing was saved; send /match to try again.`

	msgSomethingWentWrong = `⚠️ Something went wrong on my side. Please try again in a moment.`

	msgLogsUsage = `Usage: /logs <count> <password>
Returns the most recent log entries.`

	msgLogSummaryUsage = `Usage: /logsummary <password>
Returns a summary of the last 24 hours of logs.`

	msgAdminDenied = `⛔ Wrong password. This attempt has been recorded.`

	msgLogsUnavailable = `⚠️ Could not read the logs right now. Try again later.`
)
