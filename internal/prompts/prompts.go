// Package prompts holds the LLM prompt templates for each pipeline stage.
package prompts

// ResumeParserSystem primes the resume extraction call
const ResumeParserSystem = `You are an expert resume parser. Extract structured information from resumes accurately.

<rules>
- NEVER hallucinate skills or experience not explicitly mentioned in the resume
- If a field is ambiguous, prefer conservative interpretation
- Extract ALL technical skills mentioned, including frameworks and tools
- Infer seniority_level from years of experience and titles if not stated
- For years_of_experience, calculate from earliest work date to present
- Content hash will be computed separately, do not include it
</rules>`

// ResumeParserUser wraps the raw resume text
const ResumeParserUser = `<resume_text>
%s
</resume_text>

Parse the above resume and extract all structured information. Return the candidate profile with all available fields populated. If a field cannot be determined from the resume, omit it or use null.`

// PrefsParserSystem primes the preferences extraction call
const PrefsParserSystem = `You are a preference parser for job search. Extract structured search preferences from freeform natural language text.

<rules>
- If remote preference is not mentioned, default to "any"
- If salary is not mentioned, leave min_salary and max_salary as null
- Parse both explicit ("I want") and implicit ("not interested in") preferences
- "Big tech" is an excluded_companies pattern, not a company size
- Detect the currency from context. "LPA" or "lakhs" means INR. Convert LPA to annual: 1 LPA = 100,000 INR.
</rules>`

// PrefsParserUser wraps the freeform preferences text
const PrefsParserUser = `<preferences_text>
%s
</preferences_text>

Parse the above free-form job search preferences into structured fields.`

// CompanyFinderSystem primes the candidate-generation call
const CompanyFinderSystem = `You are a company research assistant. Given a candidate profile and their job search preferences, generate a list of real companies that would be good targets.

<rules>
- Only suggest REAL companies that currently exist and are actively hiring
- Match company suggestions to the candidate's industry experience and preferences
- Consider company size, location, and org type preferences
- Provide the company's primary domain (e.g., stripe.com, not www.stripe.com)
- Do NOT suggest companies listed in excluded_companies
- If preferred_companies are specified, prioritize those
</rules>

<ats_requirement>
At least 70% of your suggestions MUST be companies that use Greenhouse, Lever, or Ashby as their applicant tracking system. These platforms have public APIs that enable reliable job data extraction. Companies with custom career portals should be limited to at most 30% of results.

<tier_classification>
- tier_1: Large tech companies, >10k employees
- tier_2: Established mid-to-large companies, 1k-10k employees
- tier_3: Growing companies, 200-1000 employees
- startup: Early-to-growth stage, <200 employees
</tier_classification>
</ats_requirement>`

// CompanyFinderUser carries the profile, preferences and exclusions.
// Arguments: name, current title, years, skills, industries, tech stack,
// target titles, target seniority, preferred locations, remote preference,
// preferred industries, org types, company sizes, excluded companies,
// preferred companies, salary currency.
const CompanyFinderUser = `<candidate_profile>
Name: %s
Current Title: %s
Years of Experience: %.1f
Skills: %s
Industries: %s
Tech Stack: %s
</candidate_profile>

<search_preferences>
Target Titles: %s
Target Seniority: %s
Preferred Locations: %s
Remote Preference: %s
Preferred Industries: %s
Organization Types: %s
Company Sizes: %s
Excluded Companies: %s
Preferred Companies: %s
Salary Currency: %s
</search_preferences>

Generate 20-30 target companies. For each provide name, domain, industry, size, tier (tier_1, tier_2, tier_3, startup) and a one-line description.`

// JobProcessorSystem primes the HTML extraction call
const JobProcessorSystem = `You are a job listing parser. Extract structured job information from raw HTML or text content of job postings.

<rules>
- Extract the exact job title as written
- Parse salary ranges if mentioned (convert to integers, keep original currency)
- Identify remote_type from location and description: "remote", "hybrid", "onsite", "unknown"
- Extract required vs preferred skills separately
- Extract posted_date as YYYY-MM-DD if stated or inferable. Return null if truly unknown.
- Extract the direct application/apply URL if present in the content. Return null if not found.
- If salary is in a non-USD currency, note the currency code (INR, EUR, GBP, etc.)
- For seniority_level, infer from title and requirements
- Set is_valid_posting=false if the content is a career landing page, company overview, or lists many jobs without specific details for one position. A valid posting has ONE specific job title, a description of responsibilities, and requirements for that role.
</rules>`

// JobProcessorUser wraps one raw job's content.
// Arguments: company name, source URL, raw content (truncated by caller).
const JobProcessorUser = `<company_name>%s</company_name>
<source_url>%s</source_url>

<raw_content>
%s
</raw_content>

Parse this job posting and extract all structured fields.`

// JobScorerSystem primes the batch scoring call
const JobScorerSystem = `You are a job-candidate fit evaluator. Score how well each job matches the candidate.

<scoring_dimensions>
- skill_match (30%): Overlap between candidate skills and job requirements
- seniority (20%): Match between candidate level and job level
- location (15%): Geographic/remote compatibility
- org_type (15%): Organization type preference match
- growth_stage (10%): Company stage alignment
- compensation_fit (10%): Salary range alignment (if known)
</scoring_dimensions>

<calibration>
- A score of 85+ should be RARE, reserved for near-perfect alignment
- 70-84 is a good match where most strong candidates land
- 60-69 has some mismatches but is overall viable
- Below 60 has significant gaps
- Be honest about gaps. Do not inflate scores to be encouraging.
</calibration>`

// JobScorerUser carries the candidate block and the indexed jobs block.
// Arguments: name, current title, years, seniority, skills, industries,
// location, remote preference, org types, salary range, jobs block.
const JobScorerUser = `<candidate>
Name: %s
Title: %s
Years of Experience: %.1f
Seniority: %s
Skills: %s
Industries: %s
Location: %s
Remote Preference: %s
Preferred Org Types: %s
Salary Range: %s
</candidate>

<jobs>
%s
</jobs>

For each job, provide a score entry with job_index (the index attribute of the job), score (0-100), skill_overlap, skill_gaps, seniority_match, location_match, org_type_match (booleans), summary (2-3 sentences), recommendation ("strong_match", "good_match", "stretch", or "mismatch") and confidence (0.0-1.0).`
